// Package riskscore implements the document scanning, severity matching, and
// score aggregation pipeline that turns archive text into entity risk scores.
package riskscore

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// NumTiers is the number of severity tiers in a dictionary.
const NumTiers = 5

// Tier is one severity level of the dictionary: a weight and the keywords
// that carry it.
type Tier struct {
	Level    int      `mapstructure:"level" json:"level"`
	Weight   int      `mapstructure:"weight" json:"weight"`
	Keywords []string `mapstructure:"keywords" json:"keywords"`
}

// Dictionary is the ordered set of severity tiers used by the Matcher.
// Tiers are ordered ascending by level (1 = least severe, 5 = most severe).
type Dictionary struct {
	Tiers []Tier `mapstructure:"tiers" json:"tiers"`
}

// Validate checks the structural invariants the Matcher relies on.
func (d *Dictionary) Validate() error {
	if len(d.Tiers) != NumTiers {
		return apperrors.Newf(apperrors.CodeDictionaryInvalid,
			"dictionary must have exactly %d tiers, got %d", NumTiers, len(d.Tiers))
	}
	for i, tier := range d.Tiers {
		if tier.Level != i+1 {
			return apperrors.Newf(apperrors.CodeDictionaryInvalid,
				"tier at position %d must have level %d, got %d", i, i+1, tier.Level)
		}
		if tier.Weight <= 0 {
			return apperrors.Newf(apperrors.CodeDictionaryInvalid,
				"tier %d has non-positive weight %d", tier.Level, tier.Weight)
		}
		if len(tier.Keywords) == 0 {
			return apperrors.Newf(apperrors.CodeDictionaryInvalid,
				"tier %d has no keywords", tier.Level)
		}
		for _, kw := range tier.Keywords {
			if strings.TrimSpace(kw) == "" {
				return apperrors.Newf(apperrors.CodeDictionaryInvalid,
					"tier %d contains an empty keyword", tier.Level)
			}
		}
	}
	return nil
}

// DefaultDictionary returns the built-in severity dictionary.
func DefaultDictionary() *Dictionary {
	return &Dictionary{Tiers: []Tier{
		{Level: 1, Weight: 5, Keywords: []string{
			"complaint", "dispute", "inquiry", "irregularity",
		}},
		{Level: 2, Weight: 10, Keywords: []string{
			"fine", "penalty", "misconduct", "violation",
		}},
		{Level: 3, Weight: 25, Keywords: []string{
			"fraud", "bribery", "embezzlement", "lawsuit",
		}},
		{Level: 4, Weight: 50, Keywords: []string{
			"allegation", "indictment", "laundering", "smuggling", "trafficking",
		}},
		{Level: 5, Weight: 100, Keywords: []string{
			"abuse", "victim", "assault", "extortion", "homicide",
		}},
	}}
}

// LoadDictionary reads a dictionary override from a YAML file and validates
// it.  The file format mirrors the Dictionary struct:
//
//	tiers:
//	  - level: 1
//	    weight: 5
//	    keywords: [complaint, dispute]
//	  ...
func LoadDictionary(path string) (*Dictionary, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDictionaryInvalid,
			fmt.Sprintf("failed to read dictionary file %s", path))
	}
	var dict Dictionary
	if err := v.Unmarshal(&dict); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDictionaryInvalid,
			fmt.Sprintf("failed to parse dictionary file %s", path))
	}
	if err := dict.Validate(); err != nil {
		return nil, err
	}
	return &dict, nil
}

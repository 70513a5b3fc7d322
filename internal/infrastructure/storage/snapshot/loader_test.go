package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docrisk/internal/config"
	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
	"github.com/docuvault/docrisk/pkg/types/common"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"3e0170c6-93b0-4d4f-9f3a-000000000001","full_name":"Acme Holdings",
		 "total_score":120,"peak_tier":5,"risk_band":"HIGH","mention_count":4},
		{"id":"3e0170c6-93b0-4d4f-9f3a-000000000002","full_name":"Beta Trading",
		 "total_score":5,"peak_tier":1,"risk_band":"LOW","mention_count":1}
	]`), 0o644))

	loader := NewLoader(config.SnapshotConfig{Source: "file", Path: path}, logging.NewNopLogger())
	entities, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, "Acme Holdings", entities[0].FullName)
	assert.Equal(t, entity.RiskHigh, entities[0].RiskBand)
	assert.Equal(t, entity.RiskLow, entities[1].RiskBand)
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader(config.SnapshotConfig{
		Source: "file",
		Path:   filepath.Join(t.TempDir(), "missing.json"),
	}, logging.NewNopLogger())

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSnapshotUnavailable))
}

func TestLoadCorruptPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644))

	loader := NewLoader(config.SnapshotConfig{Source: "file", Path: path}, logging.NewNopLogger())
	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSnapshotUnavailable))
}

func TestLoadUnknownSource(t *testing.T) {
	loader := NewLoader(config.SnapshotConfig{Source: "ftp"}, logging.NewNopLogger())
	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSnapshotUnavailable))
}

func TestWriteRoundTrip(t *testing.T) {
	entities := []*entity.Entity{
		{ID: common.NewID(), FullName: "Acme Holdings", TotalScore: 60,
			PeakTier: 4, RiskBand: entity.RiskHigh, MentionCount: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entities))

	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loader := NewLoader(config.SnapshotConfig{Source: "file", Path: path}, logging.NewNopLogger())
	decoded, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, entities[0].FullName, decoded[0].FullName)
	assert.Equal(t, entities[0].RiskBand, decoded[0].RiskBand)
}

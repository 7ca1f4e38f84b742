package copier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"chronocopy/internal/model"
	"chronocopy/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLocalExecuteCopiesMatches(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	writeFile(t, src, "a.csv", "one")
	writeFile(t, src, "b.csv", "two")
	writeFile(t, src, "skip.txt", "nope")
	writeFile(t, src, "c.csv.chronocopy.tmp", "in flight")

	job := &model.Job{SourceType: model.LocationLocal, TargetType: model.LocationLocal}
	result, err := NewLocal().Execute(context.Background(), job, planner.SubRunSpec{
		Source:         src,
		Target:         dst,
		SourceFileMask: "*.csv",
	})

	require.NoError(t, err)
	assert.Len(t, result.SourceFiles, 2)
	assert.Len(t, result.CopiedFiles, 2)

	data, err := os.ReadFile(filepath.Join(dst, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestLocalExecuteNoMatches(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a.txt", "x")

	job := &model.Job{SourceType: model.LocationLocal, TargetType: model.LocationLocal}
	_, err := NewLocal().Execute(context.Background(), job, planner.SubRunSpec{
		Source:         src,
		Target:         t.TempDir(),
		SourceFileMask: "*.csv",
	})

	assert.ErrorContains(t, err, `no files matching "*.csv"`)
}

func TestLocalExecuteDefaultsMaskToEverything(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a.txt", "x")
	writeFile(t, src, "b.csv", "y")

	job := &model.Job{SourceType: model.LocationLocal, TargetType: model.LocationLocal}
	result, err := NewLocal().Execute(context.Background(), job, planner.SubRunSpec{
		Source: src,
		Target: filepath.Join(t.TempDir(), "out"),
	})

	require.NoError(t, err)
	assert.Len(t, result.CopiedFiles, 2)
}

func TestLocalExecuteRejectsAzure(t *testing.T) {
	job := &model.Job{SourceType: model.LocationAzure, TargetType: model.LocationLocal}
	_, err := NewLocal().Execute(context.Background(), job, planner.SubRunSpec{})
	assert.ErrorContains(t, err, "no data lake adapter configured")
}

func TestShouldIgnore(t *testing.T) {
	assert.True(t, shouldIgnore("report.csv.chronocopy.tmp"))
	assert.True(t, shouldIgnore("~$budget.xlsx"))
	assert.True(t, shouldIgnore("Thumbs.db"))
	assert.False(t, shouldIgnore("report.csv"))
}

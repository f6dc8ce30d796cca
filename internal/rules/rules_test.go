package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderaudit/internal/normalize"
	"tenderaudit/internal/rules"
)

func TestDefaultIsValid(t *testing.T) {
	rb := rules.Default()
	require.NoError(t, rb.Validate())
	assert.Equal(t, 10, rb.MinSubstantiveLen)
	assert.Equal(t, 0.005, rb.Consistency.FailRatio)
	assert.Equal(t, 0.001, rb.Consistency.WarnRatio)
	assert.Equal(t, 3, rb.SemanticWorkers)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	rb, err := rules.Load("")
	require.NoError(t, err)
	assert.Equal(t, rules.Default(), rb)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := []byte(`
min_substantive_len: 20
semantic_workers: 5
consistency:
  warn_ratio: 0.002
  fail_ratio: 0.01
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	rb, err := rules.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, rb.MinSubstantiveLen)
	assert.Equal(t, 5, rb.SemanticWorkers)
	assert.Equal(t, 0.01, rb.Consistency.FailRatio)
	// untouched fields keep defaults
	assert.Equal(t, rules.Default().TotalPriceKeywords, rb.TotalPriceKeywords)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := rules.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadBands(t *testing.T) {
	rb := rules.Default()
	rb.Consistency = rules.Tolerance{WarnRatio: 0.01, FailRatio: 0.005}
	assert.Error(t, rb.Validate())

	rb = rules.Default()
	rb.Consistency.WarnRatio = 0
	assert.Error(t, rb.Validate())
}

func TestValidateRejectsBadTemplate(t *testing.T) {
	rb := rules.Default()
	rb.QuestionTemplates["technical"] = "no placeholder here"
	assert.Error(t, rb.Validate())

	rb = rules.Default()
	rb.QuestionTemplates["bogus_dimension"] = "x {requirement}"
	assert.Error(t, rb.Validate())
}

func TestQuestionRendering(t *testing.T) {
	rb := rules.Default()
	q := rb.Question(normalize.DimQualification, "具备有效的安全生产许可证")
	assert.Contains(t, q, "具备有效的安全生产许可证")
	assert.NotContains(t, q, rules.QuestionPlaceholder)

	// unknown dimension falls back to the generic template
	q = rb.Question(normalize.Dimension("weird"), "某要求")
	assert.Contains(t, q, "某要求")
}

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// IntegrationTestSuite provides a context and a scratch directory to suites
// that stage files through real connectors.
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	tempDir   string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()

	tempDir, err := os.MkdirTemp("", "strata-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownSuite runs after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	s.cancel()
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	s.T().Logf("suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// TempDir returns the scratch directory path
func (s *IntegrationTestSuite) TempDir() string {
	return s.tempDir
}

// CreateTempFile writes content into the scratch directory and returns its path.
func (s *IntegrationTestSuite) CreateTempFile(name string, content []byte) string {
	return WriteFile(s.T(), s.tempDir, name, content)
}

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

// WriteCSV writes a CSV file from a header and rows of already-quoted cells.
func WriteCSV(t *testing.T, dir, name string, header []string, rows ...[]string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(strings.Join(r, ","))
		b.WriteByte('\n')
	}
	return WriteFile(t, dir, name, []byte(b.String()))
}

package update

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunSuccess(t *testing.T) {
	var out strings.Builder
	err := run(&out, zap.NewNop(), func() ([]byte, error) { return nil, nil })
	require.NoError(t, err)
	assert.Contains(t, out.String(), "up to date")
}

func TestRunFailureIsReported(t *testing.T) {
	var out strings.Builder
	boom := errors.New("exit status 1")
	err := run(&out, zap.NewNop(), func() ([]byte, error) { return []byte("no network"), boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

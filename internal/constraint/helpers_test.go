package constraint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conceptnav/internal/artefact"
	"github.com/zjrosen/conceptnav/internal/testutil"
)

func normalizedHBS(t *testing.T, b *testutil.Builder) *artefact.Artefact {
	t.Helper()
	a, err := artefact.Normalize(b.Bundle(testutil.DfHBS2021), nil)
	require.NoError(t, err)
	return a
}

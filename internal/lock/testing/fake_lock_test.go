package testing

import (
	"testing"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeLocker(t *testing.T) {
	f := NewFakeLocker()

	release, err := f.Acquire("generate")
	require.NoError(t, err)
	assert.True(t, f.Held())

	_, err = f.Acquire("remove")
	assert.True(t, errors.IsCode(err, errors.ErrLock))

	require.NoError(t, release())
	assert.False(t, f.Held())
	assert.Equal(t, []string{"generate", "remove"}, f.AcquireCalls)
	assert.Equal(t, 1, f.Releases)
}

func TestFakeLocker_Contention(t *testing.T) {
	f := NewFakeLocker().SetContention("bob@box")

	_, err := f.Acquire("generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bob@box")
}

package vidgan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.Equal(t, 16, c.BatchSize)
	require.Equal(t, 16, c.WindowSize)
	require.Equal(t, 60, c.LatentDim())
	require.Equal(t, 96*96*3, c.FrameSize())
	require.Equal(t, 0.0002, c.LearningRate)
	require.False(t, c.UseGPU)
}

func TestNewCreator(t *testing.T) {
	c, err := NewCreator(false)
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = NewCreator(true)
	var devErr *DeviceError
	require.True(t, errors.As(err, &devErr))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(CPUProfileEnv, "")
	c := DefaultConfig()
	require.NoError(t, c.LoadEnv())
	require.False(t, c.CPUProfile)

	t.Setenv(CPUProfileEnv, "1")
	require.NoError(t, c.LoadEnv())
	require.True(t, c.CPUProfile)

	t.Setenv(CPUProfileEnv, "false")
	require.NoError(t, c.LoadEnv())
	require.False(t, c.CPUProfile)

	t.Setenv(CPUProfileEnv, "sometimes")
	require.Error(t, c.LoadEnv())
}

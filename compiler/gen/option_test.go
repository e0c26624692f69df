package gen

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		err := WithHeader("// Custom header")(c)

		require.NoError(t, err)
		assert.Equal(t, "// Custom header", c.Header)
	})

	t.Run("empty header is allowed", func(t *testing.T) {
		c := &Config{Header: "existing"}
		err := WithHeader("")(c)

		require.NoError(t, err)
		assert.Equal(t, "", c.Header)
	})
}

func TestWithPackage(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		wantErr bool
	}{
		{"simple", "models", false},
		{"underscore", "graph_models", false},
		{"empty", "", true},
		{"path", "velograph/models", true},
		{"leading digit", "1models", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithPackage(tt.pkg)(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pkg, c.Package)
		})
	}
}

func TestWithWorkers(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithWorkers(4)(c))
	assert.Equal(t, 4, c.Workers)

	for _, n := range []int{0, -1} {
		err := WithWorkers(n)(c)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingConfig)
	}
}

func TestWithTargetAndLogger(t *testing.T) {
	c := &Config{}
	require.Error(t, WithTarget("")(c))
	require.NoError(t, WithTarget("out")(c))
	assert.Equal(t, "out", c.Target)

	require.Error(t, WithLogger(nil)(c))
	l := slog.New(slog.DiscardHandler)
	require.NoError(t, WithLogger(l)(c))
	assert.Same(t, l, c.Logger)
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewConfig()
		require.NoError(t, err)
		assert.NotNil(t, c.Logger)
		assert.Positive(t, c.Workers)
		assert.True(t, c.HeadReverseRelations)
		assert.Contains(t, c.Header, "DO NOT EDIT")
	})

	t.Run("options", func(t *testing.T) {
		c, err := NewConfig(WithoutReverseRelations(), WithWorkers(2))
		require.NoError(t, err)
		assert.False(t, c.HeadReverseRelations)
		assert.Equal(t, 2, c.Workers)
	})

	t.Run("first error wins", func(t *testing.T) {
		_, err := NewConfig(WithWorkers(0), WithPackage("bad/pkg"))
		require.Error(t, err)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "Workers", cerr.Option)
	})
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithWorkers(0), WithPackage("bad/pkg"), WithHeader("h"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers")
	assert.Contains(t, err.Error(), "Package")
	assert.Equal(t, "h", c.Header)
}

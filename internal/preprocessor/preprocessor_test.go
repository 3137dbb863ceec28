package preprocessor_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfranx/hlslparser/internal/preprocessor"
)

type memFS map[string]string

func (m memFS) ReadFile(name string) ([]byte, error) {
	content, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", name)
	}
	return []byte(content), nil
}

func TestProcessSplicesIncludedFile(t *testing.T) {
	fs := memFS{
		"main.sl":    "float4 main() {\n#include \"common.sl\"\n  return one();\n}\n",
		"common.sl":  "float one() { return 1.0; }\n",
	}
	out, err := preprocessor.New(fs).Process("main.sl")
	require.NoError(t, err)
	assert.Contains(t, out, `#line 1 "main.sl"`)
	assert.Contains(t, out, `#line 1 "common.sl"`)
	assert.Contains(t, out, "float one() { return 1.0; }")
	assert.Contains(t, out, "return one();")
}

func TestProcessSuppressesDuplicateIncludeCaseInsensitive(t *testing.T) {
	fs := memFS{
		"main.sl": "#include \"common.sl\"\n#include \"Common.sl\"\nfloat4 main() { return 0; }\n",
		"common.sl": "float one() { return 1.0; }\n",
	}
	out, err := preprocessor.New(fs).Process("main.sl")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "float one()"))
}

func TestProcessMissingFileReturnsError(t *testing.T) {
	fs := memFS{"main.sl": "#include \"missing.sl\"\n"}
	_, err := preprocessor.New(fs).Process("main.sl")
	assert.Error(t, err)
}

func TestProcessUnterminatedIncludeIsError(t *testing.T) {
	fs := memFS{"main.sl": "#include \"oops\n"}
	_, err := preprocessor.New(fs).Process("main.sl")
	assert.Error(t, err)
}

func TestProcessWithoutIncludesPassesThrough(t *testing.T) {
	fs := memFS{"main.sl": "float4 main() { return 0; }\n"}
	out, err := preprocessor.New(fs).Process("main.sl")
	require.NoError(t, err)
	assert.Contains(t, out, "float4 main() { return 0; }")
}

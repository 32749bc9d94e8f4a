package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type swaggerDoc struct {
	Info struct {
		Title string `json:"title"`
	} `json:"info"`
	Paths map[string]map[string]any `json:"paths"`
}

func readDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestSwaggerDocIsValidJSON(t *testing.T) {
	doc := readDoc(t)
	assert.Equal(t, "HireLens API", doc.Info.Title)
	assert.Contains(t, doc.Paths["/api/meetings"], "post")
	assert.Contains(t, doc.Paths["/api/auth/availability/{slotID}"], "delete")
}

var routerAnnotation = regexp.MustCompile(`(?m)^// @Router (\S+) \[(\w+)\]`)

func TestSwaggerDocCoversControllerAnnotations(t *testing.T) {
	doc := readDoc(t)
	files, err := filepath.Glob(filepath.Join("..", "internal", "delivery", "http", "controllers", "*_controller.go"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	routes := 0
	for _, f := range files {
		src, err := os.ReadFile(f)
		require.NoError(t, err)
		for _, m := range routerAnnotation.FindAllStringSubmatch(string(src), -1) {
			path, method := m[1], strings.ToLower(m[2])
			routes++
			require.Contains(t, doc.Paths, path, "%s: %s missing from document", filepath.Base(f), path)
			assert.Contains(t, doc.Paths[path], method, "%s: %s %s missing from document", filepath.Base(f), method, path)
		}
	}
	assert.Equal(t, routes, countOperations(doc))
}

func countOperations(doc swaggerDoc) int {
	n := 0
	for _, ops := range doc.Paths {
		n += len(ops)
	}
	return n
}

package trace

import (
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
)

// classifyPath returns the stdlib/third-party flags for a frame path.
func classifyPath(lang domain.Language, path string) (stdlib, thirdParty bool) {
	switch lang {
	case domain.LanguagePython:
		thirdParty = strings.Contains(path, "/site-packages/") || strings.Contains(path, "/dist-packages/")
		stdlib = strings.Contains(path, "/lib/python") && !thirdParty
	case domain.LanguageGo:
		stdlib = strings.HasPrefix(path, "/usr/local/go/src/") || strings.Contains(path, "GOROOT")
		thirdParty = strings.Contains(path, "/pkg/mod/") || strings.Contains(path, "vendor/")
	case domain.LanguageNode:
		stdlib = strings.HasPrefix(path, "internal/") || strings.HasPrefix(path, "node:")
		thirdParty = strings.Contains(path, "/node_modules/")
	}
	return stdlib, thirdParty
}

// goPackage returns the import path part of a Go function symbol, e.g.
// "github.com/a/b" for "github.com/a/b.(*T).Run".
func goPackage(fn string) string {
	slash := strings.LastIndexByte(fn, '/')
	dot := strings.IndexByte(fn[slash+1:], '.')
	if dot < 0 {
		return ""
	}
	return fn[:slash+1+dot]
}

// pythonModule returns the file name without directory or ".py" suffix.
func pythonModule(path string) string {
	base := path[strings.LastIndexByte(path, '/')+1:]
	return strings.TrimSuffix(base, ".py")
}

package dialect

import (
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

const (
	enryLanguageC   = "C"
	enryLanguageCPP = "C++"
)

//nolint:gochecknoglobals // static extension table.
var extendedExtensions = map[string]struct{}{
	".cc": {}, ".cpp": {}, ".cxx": {}, ".c++": {},
	".hh": {}, ".hpp": {}, ".hxx": {}, ".h++": {},
	".ipp": {}, ".tpp": {}, ".inl": {},
}

// Detect picks a dialect for a file. Linguist classification decides first,
// which lets C++ headers with a plain ".h" extension resolve to Extended;
// the extension table is the fallback. Anything unrecognized is Baseline.
func Detect(filename string, content []byte) Dialect {
	switch enry.GetLanguage(filepath.Base(filename), content) {
	case enryLanguageCPP:
		return Extended
	case enryLanguageC:
		return Baseline
	}

	if _, ok := extendedExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return Extended
	}

	return Baseline
}

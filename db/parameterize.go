package db

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
)

// SQLTemplate is an sql file parsed into a named-parameter query body with
// the parameter names extracted in order of appearance.
type SQLTemplate struct {
	Body       []byte
	Parameters []string
}

// String provides a printable representation for debugging.
func (s SQLTemplate) String() string {
	return fmt.Sprintf("Params: %s\nBody:   %s\n",
		strings.Join(s.Parameters, ", "), string(s.Body))
}

// The sql files in this package are written to be runnable as-is on the
// sqlite command line, with sample literal values marked for
// parameterization by an `/* @param */` comment, such as:
//
//	,1234 AS CompanyId    /* @param */
//
// parameterize replaces each marked value with a named parameter, giving
//
//	,:CompanyId AS CompanyId    /* @param */
//
// so the file doubles as a prepared named statement. Note that the spacing
// around the marker needs to be precise.
var (
	valueAtoms = []string{
		`(?:date\('[^']+'\))`,        // date('2026-03-31')
		`(?:[a-zA-Z_]\w*\([^\)]*\))`, // any_func(...)
		`(?:'[^']*')`,                // 'a string' or ''
		`(?:-?\d*\.?\d+)`,            // 123 or 1.23 or -5
		`(?:null)`,                   // null
	}

	regexpParam = regexp.MustCompile(fmt.Sprintf(
		`(?P<value>%s)(?P<as>\s+AS\s+)(?P<param>[A-Za-z0-9_]+)(?P<end>\s+/\* @param \*/)`,
		strings.Join(valueAtoms, "|"),
	))
)

// parameterize extracts the marked parameters from an sql template,
// returning the rewritten body and the parameter names.
func parameterize(tpl []byte) (*SQLTemplate, error) {
	matches := regexpParam.FindAllSubmatch(tpl, -1)
	if len(matches) == 0 {
		return nil, errors.New("parameterize: no parameters found")
	}

	st := &SQLTemplate{
		Parameters: make([]string, len(matches)),
	}
	paramIdx := regexpParam.SubexpIndex("param")
	for i := range matches {
		st.Parameters[i] = string(matches[i][paramIdx])
	}

	st.Body = regexpParam.ReplaceAll(tpl, []byte(`:${param}${as}${param}`))
	return st, nil
}

// ParameterizeFile reads an sql file from the provided filesystem and
// returns its parameterized template.
func ParameterizeFile(fileFS fs.FS, filePath string) (*SQLTemplate, error) {
	fileBytes, err := fs.ReadFile(fileFS, filePath)
	if err != nil {
		return nil, fmt.Errorf("file read error: %w", err)
	}
	tpl, err := parameterize(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("query template error for %q: %w", filePath, err)
	}
	return tpl, nil
}

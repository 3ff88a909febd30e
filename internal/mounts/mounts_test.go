package mounts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

//go:embed testdata
var testdata embed.FS

//go:embed testdata/dirA
var testdataDirA embed.FS

func TestMounts(t *testing.T) {

	tests := []struct {
		name       string
		mountName  string
		embeddedFS fs.FS
		dirPath    string
		dirToStat  string
		wantErr    error
	}{
		{
			name:       "embedded fs mount",
			mountName:  "testdata",
			embeddedFS: testdata,
			dirPath:    "",
			dirToStat:  "dirA/dirB",
		},
		{
			name:       "directory fs mount",
			mountName:  "testdata",
			embeddedFS: testdata,
			dirPath:    "./testdata",
			dirToStat:  "dirA/dirB",
		},
		{
			name:       "directory fs mount fail",
			mountName:  "testdata",
			embeddedFS: testdata,
			dirPath:    "./doesNotExist",
			wantErr:    errors.New(`new mount at "./doesNotExist"`),
		},
		{
			name:       "embedded fs mount for dirA",
			mountName:  "testdata/dirA",
			embeddedFS: testdataDirA,
			dirPath:    "",
			dirToStat:  "dirB",
		},
		{
			name:       "directory fs mount for dirA",
			mountName:  "testdata/dirA",
			embeddedFS: testdataDirA,
			dirPath:    "testdata/dirA",
			dirToStat:  "dirB",
		},
		{
			name:       "invalid mount name",
			mountName:  `/dev/null`,
			embeddedFS: testdata,
			dirPath:    "testdata",
			dirToStat:  "",
			wantErr:    ErrInvalidPath{`/dev/null`},
		},
		{
			name:       "another invalid mount name",
			mountName:  `testdata/`,
			embeddedFS: testdata,
			dirPath:    "",
			dirToStat:  "",
			wantErr:    ErrInvalidPath{`testdata/`},
		},
	}

	for ii, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", ii, tt.name), func(t *testing.T) {

			fm, err := NewFileMount(tt.mountName, tt.embeddedFS, tt.dirPath)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error %v, got none (mount %s)", tt.wantErr, fm.MountName)
				}

				// Check if the error is of the ErrInvalidPath type.
				var eip ErrInvalidPath
				if errors.As(tt.wantErr, &eip) {
					if !errors.As(err, &eip) {
						t.Errorf("expected ErrInvalidPath error, got %v", err)
					}
					return
				}
				// Otherwise check the error string.
				if got, want := err.Error(), tt.wantErr.Error(); !strings.Contains(got, want) {
					t.Errorf("error got %q want substring %q", got, want)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}

			stat, err := fs.Stat(fm.FS, tt.dirToStat)
			if err != nil {
				t.Fatalf("could not stat %q at top level of fs: %v", tt.dirToStat, err)
			}
			if !stat.IsDir() {
				t.Errorf("%q of fs is not a dir: %v", tt.dirToStat, stat.Name())
			}
		})
	}
}

// TestMountEquivalence checks that an embedded mount and a directory mount
// of the same tree present the same files.
func TestMountEquivalence(t *testing.T) {

	embeddedMount, err := NewFileMount("testdata", testdata, "")
	if err != nil {
		t.Fatal(err)
	}
	dirMount, err := NewFileMount("testdata", testdata, "./testdata")
	if err != nil {
		t.Fatal(err)
	}

	embeddedAsString, err := PrintFS(embeddedMount.FS)
	if err != nil {
		t.Fatal(err)
	}
	dirAsString, err := PrintFS(dirMount.FS)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(embeddedAsString, dirAsString); diff != "" {
		t.Errorf("unexpected difference between embedded and directory mounts:\n%s", diff)
	}
}

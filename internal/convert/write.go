package convert

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

// OutputPath returns <dir>/<table>.sql. An empty dir means the working directory.
func OutputPath(dir, table string) string {
	return filepath.Join(dir, table+".sql")
}

// Encode writes each statement followed by a newline to w.
func Encode(w io.Writer, statements []InsertStatement) error {
	bw := bufio.NewWriter(w)
	for _, st := range statements {
		if _, err := bw.WriteString(st.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Write creates (or truncates) path with one statement per line.
//
// The statements are written to a temporary file in the same directory and
// renamed over path on success, so a failed write never leaves a partial file.
func Write(path string, statements []InsertStatement) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := Encode(tmp, statements); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	committed = true
	return nil
}

package setup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/2beens/fittrack/pkg"
)

const (
	ExampleEnvFile = ".env.example"
	LocalEnvFile   = ".env.local"
)

const (
	ExitOK      = 0
	ExitFailure = 1
)

// Run prepares the local environment file in dir by copying the example
// one. An existing local file is never touched.
func Run(dir string, out io.Writer) int {
	localPath := filepath.Join(dir, LocalEnvFile)
	examplePath := filepath.Join(dir, ExampleEnvFile)

	localExists, err := pkg.PathExists(localPath, false)
	if err != nil {
		fmt.Fprintf(out, "error: check %s: %s\n", LocalEnvFile, err)
		return ExitFailure
	}
	if localExists {
		fmt.Fprintf(out, "warning: %s already exists, leaving it as is\n", LocalEnvFile)
		return ExitOK
	}

	content, err := os.ReadFile(examplePath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "error: %s not found in %s\n", ExampleEnvFile, dir)
		} else {
			fmt.Fprintf(out, "error: read %s: %s\n", ExampleEnvFile, err)
		}
		return ExitFailure
	}

	if err := writeNew(localPath, content); err != nil {
		fmt.Fprintf(out, "error: create %s: %s\n", LocalEnvFile, err)
		return ExitFailure
	}

	fmt.Fprintf(out, "created %s from %s\n", LocalEnvFile, ExampleEnvFile)
	fmt.Fprintln(out, "set FITTRACK_AUTH_API_URL and FITTRACK_AUTH_ANON_KEY in it before starting the service")
	return ExitOK
}

// writeNew fails if the file appeared in the meantime.
func writeNew(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

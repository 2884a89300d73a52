package cmd

import (
	"bytes"
	"os"
	"runtime"
	"strings"
	"testing"
)

func withTempHome(t *testing.T) func() {
	t.Helper()
	dir := t.TempDir()
	oldHOME, hadHOME := os.LookupEnv("HOME")
	oldUSERPROFILE, hadUSERPROFILE := os.LookupEnv("USERPROFILE")
	os.Setenv("HOME", dir)
	os.Setenv("USERPROFILE", dir)
	if runtime.GOOS == "windows" {
		os.Setenv("HOMEDRIVE", "")
		os.Setenv("HOMEPATH", "")
	}
	return func() {
		if hadHOME {
			os.Setenv("HOME", oldHOME)
		} else {
			os.Unsetenv("HOME")
		}
		if hadUSERPROFILE {
			os.Setenv("USERPROFILE", oldUSERPROFILE)
		} else {
			os.Unsetenv("USERPROFILE")
		}
	}
}

func TestRoot_Version(t *testing.T) {
	root := NewRootCmd("1.0.0", "2026-08-30")
	out := new(bytes.Buffer)
	root.SetOut(out)

	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1.0.0") {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cleanup := withTempHome(t)
	defer cleanup()

	if err := saveToken("abc123\n"); err != nil {
		t.Fatal(err)
	}
	tok, err := loadToken()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "abc123" {
		t.Fatalf("token = %q", tok)
	}
}

func TestLogout_RemovesToken(t *testing.T) {
	cleanup := withTempHome(t)
	defer cleanup()

	if err := saveToken("abc123"); err != nil {
		t.Fatal(err)
	}
	root := NewRootCmd("1.0.0", "2026-08-30")
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{"auth", "logout"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(tokenPath()); !os.IsNotExist(err) {
		t.Fatalf("token file still present: %v", err)
	}

	// logout again is a no-op, not an error
	root.SetArgs([]string{"auth", "logout"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
}

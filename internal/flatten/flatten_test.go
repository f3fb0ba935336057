package flatten

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanDir_SkipsDependenciesAndTests(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/Vault.sol", "contract Vault {}")
	writeFile(t, root, "src/tokens/Token.sol", "contract Token {}")
	writeFile(t, root, "test/Vault.t.sol", "contract VaultTest {}")
	writeFile(t, root, "script/Deploy.s.sol", "contract Deploy {}")
	writeFile(t, root, "lib/forge-std/src/Test.sol", "contract Test {}")
	writeFile(t, root, "node_modules/@oz/ERC20.sol", "contract ERC20 {}")
	writeFile(t, root, "README.md", "# readme")

	files, err := ScanDir(root)
	if err != nil {
		t.Fatal(err)
	}

	var rels []string
	for _, f := range files {
		rels = append(rels, f.Rel)
	}
	got := strings.Join(rels, ",")
	if got != "src/Vault.sol,src/tokens/Token.sol" {
		t.Fatalf("ScanDir = %s, want src/Vault.sol,src/tokens/Token.sol", got)
	}
}

func TestFlatten_ConcatenatesInPathOrder(t *testing.T) {
	root := filepath.Join(t.TempDir(), "my-protocol")
	writeFile(t, root, "src/B.sol", "contract B {}\n")
	writeFile(t, root, "src/A.sol", "contract A {}")

	res, err := Flatten(root)
	if err != nil {
		t.Fatal(err)
	}

	if res.ProjectName != "my-protocol" {
		t.Errorf("ProjectName = %q, want my-protocol", res.ProjectName)
	}
	want := "// File: src/A.sol\ncontract A {}\n\n// File: src/B.sol\ncontract B {}\n"
	if res.Content != want {
		t.Fatalf("Content = %q, want %q", res.Content, want)
	}
	if len(res.Files) != 2 {
		t.Fatalf("Files = %d, want 2", len(res.Files))
	}
	if !strings.HasPrefix(res.Summary(), "2 files, ") {
		t.Errorf("Summary = %q", res.Summary())
	}
}

func TestFlatten_Errors(t *testing.T) {
	if _, err := Flatten(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Flatten(missing root) returned nil error")
	}

	empty := t.TempDir()
	writeFile(t, empty, "notes.txt", "nothing here")
	if _, err := Flatten(empty); !errors.Is(err, ErrNoContracts) {
		t.Errorf("Flatten(empty) error = %v, want ErrNoContracts", err)
	}

	file := filepath.Join(t.TempDir(), "Single.sol")
	if err := os.WriteFile(file, []byte("contract S {}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Flatten(file); err == nil {
		t.Error("Flatten(file) returned nil error")
	}
}

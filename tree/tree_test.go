package tree

import (
	"testing"
)

func TestTreeShape(t *testing.T) {
	root := NewRootCmd()

	want := map[string]bool{"search": false, "history": false, "dev": false}
	for _, c := range root.Commands() {
		if _, tracked := want[c.Name()]; tracked {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q missing from the tree", name)
		}
	}
}

func TestGlobalFlagsRegistered(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{flagServer, flagHistoryFile, flagHistoryMax, flagLog, flagLogLevel} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not registered", name)
		}
	}
}

func TestHistoryPathFlagOverride(t *testing.T) {
	root := NewRootCmd()
	if err := root.PersistentFlags().Parse([]string{"--history-file=/tmp/custom.json"}); err != nil {
		t.Fatal(err)
	}
	p, err := historyPath(root.PersistentFlags())
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/custom.json" {
		t.Errorf("historyPath = %q, want flag override", p)
	}
}

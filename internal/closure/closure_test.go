package closure

import (
	"testing"

	"github.com/dvm-shlee/pyslice/pkg/pytypes"
)

func idx(path string) *pytypes.ModuleIndex {
	return pytypes.NewModuleIndex(path, "")
}

func TestRun_ExternalEntryUnknownModule(t *testing.T) {
	indexes := map[string]*pytypes.ModuleIndex{}
	_, err := Run(indexes, []Entry{{ModulePath: "mod.py", Name: "handler"}})
	if err == nil {
		t.Fatal("expected ExternalEntry error for unknown module")
	}
	if _, ok := err.(*ExternalEntry); !ok {
		t.Fatalf("expected *ExternalEntry, got %T", err)
	}
}

func TestRun_ExternalEntryUnknownName(t *testing.T) {
	mod := idx("mod.py")
	indexes := map[string]*pytypes.ModuleIndex{"mod.py": mod}
	_, err := Run(indexes, []Entry{{ModulePath: "mod.py", Name: "missing"}})
	if err == nil {
		t.Fatal("expected ExternalEntry error for unknown name")
	}
}

func TestRun_TransitiveDefClosure(t *testing.T) {
	mod := idx("mod.py")
	mod.Defs["handler"] = &pytypes.DefItem{
		Name:      "handler",
		Kind:      pytypes.KindFunction,
		Source:    "def handler():\n    return helper()\n",
		Pruned:    "def handler():\n    return helper()\n",
		FreeNames: map[string]bool{"helper": true},
	}
	mod.Defs["helper"] = &pytypes.DefItem{
		Name:      "helper",
		Kind:      pytypes.KindFunction,
		Source:    "def helper():\n    return 1\n",
		Pruned:    "def helper():\n    return 1\n",
		FreeNames: map[string]bool{},
	}

	report, err := Run(map[string]*pytypes.ModuleIndex{"mod.py": mod}, []Entry{{ModulePath: "mod.py", Name: "handler"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.DefItems) != 2 {
		t.Fatalf("expected 2 reached defs, got %d: %+v", len(report.DefItems), report.DefItems)
	}
	names := map[string]bool{}
	for _, d := range report.DefItems {
		names[d.Name] = true
	}
	if !names["handler"] || !names["helper"] {
		t.Errorf("expected handler and helper reached, got %+v", names)
	}
}

func TestRun_CycleSafe(t *testing.T) {
	mod := idx("mod.py")
	mod.Defs["a"] = &pytypes.DefItem{Name: "a", FreeNames: map[string]bool{"b": true}}
	mod.Defs["b"] = &pytypes.DefItem{Name: "b", FreeNames: map[string]bool{"a": true}}

	report, err := Run(map[string]*pytypes.ModuleIndex{"mod.py": mod}, []Entry{{ModulePath: "mod.py", Name: "a"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.DefItems) != 2 {
		t.Fatalf("expected 2 reached defs on a mutual cycle, got %d", len(report.DefItems))
	}
}

func TestRun_UnboundNameRecorded(t *testing.T) {
	mod := idx("mod.py")
	mod.Defs["handler"] = &pytypes.DefItem{
		Name:      "handler",
		FreeNames: map[string]bool{"mystery": true},
	}

	report, err := Run(map[string]*pytypes.ModuleIndex{"mod.py": mod}, []Entry{{ModulePath: "mod.py", Name: "handler"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.Unbound) != 1 || report.Unbound[0] != "mod.py:mystery" {
		t.Errorf("expected unbound entry mod.py:mystery, got %+v", report.Unbound)
	}
}

func TestRun_ImportReachedAndOrdered(t *testing.T) {
	mod := idx("mod.py")
	mod.Defs["handler"] = &pytypes.DefItem{
		Name:      "handler",
		FreeNames: map[string]bool{"requests": true},
	}
	mod.Imports["requests"] = &pytypes.ImportItem{
		ImportedName: "requests",
		Code:         "import requests",
	}

	report, err := Run(map[string]*pytypes.ModuleIndex{"mod.py": mod}, []Entry{{ModulePath: "mod.py", Name: "handler"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Imports["mod.py"]["requests"] == nil {
		t.Fatal("expected requests import reached")
	}
	if len(report.ImportOrder) != 1 || report.ImportOrder[0].Alias != "requests" {
		t.Errorf("expected ImportOrder to record requests, got %+v", report.ImportOrder)
	}
}

func TestRun_VarTransitiveFreeNames(t *testing.T) {
	mod := idx("mod.py")
	mod.Defs["handler"] = &pytypes.DefItem{
		Name:      "handler",
		FreeNames: map[string]bool{"CONFIG": true},
	}
	mod.Vars["CONFIG"] = &pytypes.VarsItem{
		Name:      "CONFIG",
		Code:      "CONFIG = {\"timeout\": DEFAULT_TIMEOUT}",
		FreeNames: map[string]bool{"DEFAULT_TIMEOUT": true},
	}
	mod.Vars["DEFAULT_TIMEOUT"] = &pytypes.VarsItem{
		Name: "DEFAULT_TIMEOUT",
		Code: "DEFAULT_TIMEOUT = 30",
	}

	report, err := Run(map[string]*pytypes.ModuleIndex{"mod.py": mod}, []Entry{{ModulePath: "mod.py", Name: "handler"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.Vars["mod.py"]) != 2 {
		t.Fatalf("expected both CONFIG and DEFAULT_TIMEOUT reached, got %+v", report.Vars["mod.py"])
	}
}

// TestRun_AnnotationOnlyNameRoutedToTypeHints mirrors a `def handler(x: Foo)
// -> None` entry where Foo is never used outside annotation position: the
// import it resolves to should end up in TypeHints, not the rendered
// top-level Imports bucket.
func TestRun_AnnotationOnlyNameRoutedToTypeHints(t *testing.T) {
	mod := idx("mod.py")
	mod.Defs["handler"] = &pytypes.DefItem{
		Name:      "handler",
		FreeNames: map[string]bool{"Foo": true},
		TypeOnly:  map[string]bool{"Foo": true},
	}
	mod.Imports["Foo"] = &pytypes.ImportItem{
		FromModule:   "mypkg.types",
		ImportedName: "Foo",
		Code:         "from mypkg.types import Foo",
	}

	report, err := Run(map[string]*pytypes.ModuleIndex{"mod.py": mod}, []Entry{{ModulePath: "mod.py", Name: "handler"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	item, ok := report.TypeHints["Foo"]
	if !ok {
		t.Fatal("expected Foo routed to TypeHints")
	}
	if item.FromModule != "mypkg.types" || item.ImportedName != "Foo" {
		t.Errorf("unexpected TypeHints item: %+v", item)
	}
	if aliases, ok := report.Imports["mod.py"]; ok && aliases["Foo"] != nil {
		t.Error("Foo should have been removed from Imports once routed to TypeHints")
	}
}

// TestRun_NameUsedBothAsAnnotationAndAtRuntimeStaysAsImport covers the case
// where one def uses a name only in annotation position but another reached
// def uses the same name as a runtime value: it must stay a plain import,
// never move to TypeHints.
func TestRun_NameUsedBothAsAnnotationAndAtRuntimeStaysAsImport(t *testing.T) {
	mod := idx("mod.py")
	mod.Defs["handler"] = &pytypes.DefItem{
		Name:      "handler",
		FreeNames: map[string]bool{"helper": true, "Foo": true},
		TypeOnly:  map[string]bool{"Foo": true},
	}
	mod.Defs["helper"] = &pytypes.DefItem{
		Name:      "helper",
		FreeNames: map[string]bool{"Foo": true},
		TypeOnly:  map[string]bool{},
	}
	mod.Imports["Foo"] = &pytypes.ImportItem{
		FromModule:   "mypkg.types",
		ImportedName: "Foo",
		Code:         "from mypkg.types import Foo",
	}

	report, err := Run(map[string]*pytypes.ModuleIndex{"mod.py": mod}, []Entry{{ModulePath: "mod.py", Name: "handler"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if _, ok := report.TypeHints["Foo"]; ok {
		t.Error("Foo is used at runtime elsewhere, must not move to TypeHints")
	}
	if report.Imports["mod.py"]["Foo"] == nil {
		t.Error("expected Foo to remain a plain import")
	}
}

func TestRun_MultipleEntriesShareModuleIndex(t *testing.T) {
	mod := idx("mod.py")
	mod.Defs["a"] = &pytypes.DefItem{Name: "a"}
	mod.Defs["b"] = &pytypes.DefItem{Name: "b"}

	report, err := Run(map[string]*pytypes.ModuleIndex{"mod.py": mod}, []Entry{
		{ModulePath: "mod.py", Name: "a"},
		{ModulePath: "mod.py", Name: "b"},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.DefItems) != 2 {
		t.Fatalf("expected both entries reached, got %d", len(report.DefItems))
	}
}

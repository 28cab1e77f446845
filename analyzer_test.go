package qualflow_test

import (
	"path/filepath"
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/sirkon/qualflow"
)

func TestNullFlow(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, qualflow.Analyzer, "nullflow")
}

func TestNullResultFacts(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, qualflow.Analyzer, "nullfacts")
}

func TestConfigFlag(t *testing.T) {
	testdata := analysistest.TestData()

	if err := qualflow.Analyzer.Flags.Set("config", filepath.Join(testdata, "strict.yaml")); err != nil {
		t.Fatal(err)
	}

	defer func() {
		_ = qualflow.Analyzer.Flags.Set("config", "")
	}()

	analysistest.Run(t, testdata, qualflow.Analyzer, "strict")
}

package discovery

import "strings"

// classifyPythonFile classifies a Python file by its filename. Test files
// match test_*.py or *_test.py patterns.
func classifyPythonFile(name string) FileClass {
	base := strings.TrimSuffix(name, ".py")
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test") {
		return ClassTest
	}
	return ClassSource
}

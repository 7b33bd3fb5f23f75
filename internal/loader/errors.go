package loader

import "fmt"

func errNegative(row Row, col string, v int64) error {
	return fmt.Errorf("line %d: column %s: negative value %d", row.Line, col, v)
}

func errDuplicate(row Row, code string) error {
	return fmt.Errorf("line %d: duplicate state %s", row.Line, code)
}

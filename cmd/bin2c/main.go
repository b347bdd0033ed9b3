// bin2c embeds a binary file in a C source file as a byte array.
//
// Usage: bin2c <src-binary> <dst-c-source>
package main

import (
	"fmt"
	"os"
	"strings"
)

func run(srcPath, dstPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("// This is a generated file; changes may be overwritten.\n")
	sb.WriteString("const uint8_t data[] = {")
	for _, b := range data {
		fmt.Fprintf(&sb, "%d,", b)
	}
	sb.WriteString("};\n")

	return os.WriteFile(dstPath, []byte(sb.String()), 0o644)
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <src-binary> <dst-c-source>\n", os.Args[0])
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

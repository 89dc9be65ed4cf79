//go:build ignore

package main

import (
	"bytes"
	"context"
	"os"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/storage"
)

func main() {
	total := 50000

	var buf bytes.Buffer
	for range total {
		buf.WriteString("somedata_")
		buf.WriteString(os.Args[1])
		buf.WriteByte('\n')
	}

	strg := storage.NewStorage()
	if err := strg.CrashSafeWriteFile(context.Background(), os.Args[2], buf.Bytes(), 0o755, 0o644); err != nil {
		os.Exit(1)
	}
}

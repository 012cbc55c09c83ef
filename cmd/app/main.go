package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Ctrl+C 时取消正在进行的请求，serve 模式下优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errOperationFailed) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("❌ "+err.Error()))
		}
		stop()
		os.Exit(1)
	}
}

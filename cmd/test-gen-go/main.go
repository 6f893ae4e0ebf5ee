package main

import (
	"context"
	_ "embed"

	"github.com/goaux/headline"
	"github.com/takumakei/test-gen-go/generator"
)

//go:embed usage.md
var usage string

func main() {
	generator.Main(context.Background(), generator.Config{
		Use:     "test-gen-go",
		Short:   headline.Get(usage),
		Long:    usage,
		Version: "v0.1.0",
	})
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/TraceApi/brasil-utils/internal/core/domain"
)

func main() {
	count := flag.Int("n", 1, "How many CPFs to generate")
	masked := flag.Bool("masked", false, "Format as xxx.xxx.xxx-xx")
	flag.Parse()

	if *count < 1 {
		fmt.Println("Error: -n must be at least 1")
		os.Exit(1)
	}

	for i := 0; i < *count; i++ {
		fmt.Println(domain.GenerateCPF(*masked))
	}
}

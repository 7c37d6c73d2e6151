package main

import (
	"log"
	"os"
)

func main() {
	std := log.New(os.Stderr, "ADMIN : ", log.LstdFlags)
	if err := run(std, os.Args[1:]); err != nil {
		std.Fatalf("%+v", err)
	}
}

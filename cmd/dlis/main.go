/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/welldata/dlis/cmd/dlis/cmd"
)

func main() {
	cmd.Execute()
}

package main

import "kotok/internal/cli"

func main() {
	cli.Execute()
}

// Command wispctl is a thin CLI driver over the wisp runtime core: it
// evaluates packed-syntax-tree fixture files and prints the terminal
// result or exception. It has no tokenizer or parser of its own; its
// subcommands operate on fixtures fabricated by gen-fixture.
package main

func main() {
	execute()
}

package main

import "github.com/liftedinit/powchain/cmd/powchain"

func main() {
	powchain.Execute()
}

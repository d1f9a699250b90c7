package main

import "github.com/The-Noona-Project/Noona-Vault/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/ahmadoasif/YT-Downloader/cmd"

func main() {
	cmd.Execute()
}

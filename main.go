package main

import "emby-tagger/cmd"

func main() {
	cmd.Execute()
}

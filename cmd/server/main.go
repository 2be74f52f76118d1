package main

import (
	"github.com/nguyentranbao-ct/chat-timeline/cmd"
)

func main() {
	cmd.Execute()
}

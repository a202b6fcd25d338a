package main

import "yamdb/cmd/manage/command"

func main() {
	command.Execute()
}

package main

import "emo-pages-backend/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"forumguard/bot"
)

func main() {
	bot.Run()
}

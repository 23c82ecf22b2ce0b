package main

import "pipejob/internal/app"

func main() {
	app.Main()
}

package main

import "sidequest_portal/internal/app"

func main() {
	app.Run()
}

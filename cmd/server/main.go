package main

import "taskdeck/internal/app"

// @title                       Taskdeck API
// @version                     1.0
// @description                 Personal task manager with deadlines and Telegram reminders.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	app.Run()
}

package main

import "github.com/adanyl0v/todo-planner/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustLoadConfig()
	app.MustInitApplicationLogger()

	app.MustConnectStore()
	defer app.DisconnectStore()

	app.MustConnectNATS()
	defer app.DisconnectNATS()

	app.MustListenAndServeHTTP()
}

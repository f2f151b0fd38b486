package main

import "github.com/adanyl0v/taskflow/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustInitStore()
	defer app.CloseStore()

	app.MustListenAndServeHTTP()
}

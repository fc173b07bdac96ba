package main

import (
	"github.com/WiDayn/AutoTopicSum/cmd/handlers"
	"github.com/WiDayn/AutoTopicSum/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}

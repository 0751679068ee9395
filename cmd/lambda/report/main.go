// Report Generation Lambda entry point
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"bnpl-portfolio-engine/internal/handlers"
	"bnpl-portfolio-engine/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	// Create handler
	handler, err := handlers.NewReportHandler()
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}

	// Start Lambda
	lambda.Start(handler.Handle)
}

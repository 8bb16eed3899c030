package main

import (
	_ "github.com/cloudnews/cloudnews/src/blobdev"
	_ "github.com/cloudnews/cloudnews/src/migration"
	"github.com/cloudnews/cloudnews/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}

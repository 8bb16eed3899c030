package website

import (
	"net/http"
	"regexp"

	"github.com/cloudnews/cloudnews/src/assets"
	"github.com/cloudnews/cloudnews/src/db"
	"github.com/cloudnews/cloudnews/src/fb"
	"github.com/cloudnews/cloudnews/src/logging"
)

func NewAPIRoutes(conn db.ConnOrTx, blobs assets.BlobStore, fbClient *fb.Client) http.Handler {
	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			attachDeps(conn, blobs, fbClient),
			logRequestsMiddleware,
			panicCatcherMiddleware,
			logContextErrorsMiddleware,
		},
	}

	routes.GET(regexp.MustCompile(`^/api/published_news$`), PublishedNews)
	routes.GET(regexp.MustCompile(`^/api/news/(?P<id>[^/]+)$`), ReadNews)
	routes.GET(regexp.MustCompile(`^/api/news/(?P<id>[^/]+)/image$`), NewsImage)
	routes.GET(regexp.MustCompile(`^/api/news/(?P<id>[^/]+)/thumb$`), NewsThumbnail)
	routes.POST(regexp.MustCompile(`^/api/login$`), Login)

	loggedIn := routes.WithMiddleware(needsAuth)
	loggedIn.GET(regexp.MustCompile(`^/api/session_info$`), SessionInfo)
	loggedIn.POST(regexp.MustCompile(`^/api/logout$`), Logout)
	loggedIn.GET(regexp.MustCompile(`^/api/my_articles$`), MyArticles)
	loggedIn.POST(regexp.MustCompile(`^/api/articles$`), SaveArticle)
	loggedIn.POST(regexp.MustCompile(`^/api/articles/(?P<id>[^/]+)$`), SaveArticle)
	loggedIn.POST(regexp.MustCompile(`^/api/articles/(?P<id>[^/]+)/submit$`), SubmitArticle)

	routes.AnyMethod(regexp.MustCompile(`^`), FourOhFour)

	return router
}

func attachDeps(conn db.ConnOrTx, blobs assets.BlobStore, fbClient *fb.Client) Middleware {
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Conn = conn
			c.Blobs = blobs
			c.FBClient = fbClient

			logger := logging.With().Str("route", c.Route).Logger()
			c.Logger = &logger

			return h(c)
		}
	}
}

func FourOhFour(c *RequestContext) ResponseData {
	return c.ErrorResponse(http.StatusNotFound, "not found")
}

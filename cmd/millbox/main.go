// millbox is an in-memory Modelmill platform emulator for local
// development and tests. It speaks the same HTTP surface the client
// packages call, backed by nothing but process memory.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/modelmill/modelmill/cmd/millbox/handlers"
	"github.com/modelmill/modelmill/internal/sandbox"
	"github.com/modelmill/modelmill/pkg/cert"
	mconf "github.com/modelmill/modelmill/pkg/configs/millbox"
	"github.com/modelmill/modelmill/pkg/utils/echoutil"
	"github.com/modelmill/modelmill/pkg/utils/filewatch"
)

func main() {

	configPath := flag.String("config-path", "", "millbox config path. empty runs the built-in default")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	ptls := flag.Bool("tls", false, "serve TLS with a generated self-signed certificate")
	flag.Parse()

	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	// read configfile
	conf, err := mconf.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}

	if *configPath != "" {
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *configPath)
		if err != nil {
			log.Fatalf("can not watch configuration: %s", err)
		}
		defer cancel()
		context.AfterFunc(ctx, func() {
			log.Println("config file is updated. quit to restart server.")
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				log.Printf("error on shutdown by config update: %s", err)
			}
		})
	}

	box := sandbox.New(conf.Seed())
	secret := []byte(conf.TokenSecret)
	auth := handlers.RequireToken(secret)
	gridAuth := handlers.RequireGridAccount(box)

	// handlers
	{
		ttl := time.Duration(conf.TokenTTL) * time.Second
		e.POST(route("oauth/token"), handlers.TokenHandler(box, secret, ttl))
	}

	{
		e.GET(
			route("modelRepository/repositories"),
			handlers.ListRepositoriesHandler(box), auth,
		)
		e.GET(
			route("modelRepository/repositories/:nameOrId"),
			handlers.GetRepositoryHandler(box, "nameOrId"), auth,
		)

		e.POST(route("modelRepository/projects"), handlers.CreateProjectHandler(box), auth)
		e.GET(
			route("modelRepository/projects/:nameOrId"),
			handlers.GetProjectHandler(box, "nameOrId"), auth,
		)
		e.PUT(
			route("modelRepository/projects/:projectId"),
			handlers.UpdateProjectHandler(box, "projectId"), auth,
		)

		e.POST(route("modelRepository/models"), handlers.CreateModelHandler(box), auth)
		e.GET(route("modelRepository/models"), handlers.ListModelsHandler(box), auth)
		e.GET(
			route("modelRepository/models/:nameOrId"),
			handlers.GetModelHandler(box, "nameOrId"), auth,
		)
		e.POST(
			route("modelRepository/models/:modelId/versions"),
			handlers.CreateModelVersionHandler(box, "modelId"), auth,
		)
		e.POST(
			route("modelRepository/models/:modelId/contents"),
			handlers.AddModelContentHandler(box, "modelId"), auth,
		)
		e.GET(
			route("modelRepository/models/:modelId/contents"),
			handlers.ListModelContentsHandler(box, "modelId"), auth,
		)
		e.DELETE(
			route("modelRepository/models/:modelId/contents"),
			handlers.DeleteModelContentsHandler(box, "modelId"), auth,
		)

		e.POST(route("modelRepository/imports"), handlers.ImportModelHandler(box), auth)
	}

	{
		e.GET(route("modelPublish/destinations"), handlers.ListDestinationsHandler(box), auth)
		e.GET(
			route("modelPublish/destinations/:name"),
			handlers.GetDestinationHandler(box, "name"), auth,
		)
		e.POST(route("modelPublish/models"), handlers.PublishCodeHandler(box), auth)
		e.GET(
			route("modelPublish/jobs/:jobId"),
			handlers.GetPublishJobHandler(box, "jobId"), auth,
		)
	}

	{
		e.POST(route("modelManagement/publish"), handlers.PublishModelHandler(box), auth)
		e.GET(
			route("modelManagement/performanceTasks"),
			handlers.ListPerformanceDefinitionsHandler(box), auth,
		)
		e.POST(
			route("modelManagement/performanceTasks/:definitionId/runs"),
			handlers.RunPerformanceDefinitionHandler(box, "definitionId"), auth,
		)
	}

	{
		e.GET(
			route("microAnalyticScore/modules/:moduleName"),
			handlers.GetModuleHandler(box, "moduleName"), auth,
		)
		e.GET(
			route("microAnalyticScore/modules/:moduleName/steps"),
			handlers.ListModuleStepsHandler(box, "moduleName"), auth,
		)
		e.POST(
			route("microAnalyticScore/modules/:moduleName/steps/:stepId"),
			handlers.ExecuteModuleStepHandler(box, "moduleName", "stepId"), auth,
		)
		e.DELETE(
			route("microAnalyticScore/modules/:moduleName"),
			handlers.DeleteModuleHandler(box, "moduleName"), auth,
		)
	}

	{
		e.GET(route("pipelineAutomation"), handlers.ProbeAutomationHandler(box), auth)
		e.POST(
			route("pipelineAutomation/projects"),
			handlers.CreateAutomationProjectHandler(box), auth,
		)
	}

	{
		e.GET(
			route("dataTables/:source/tables/:tableName"),
			handlers.ResolveTableHandler(box, "source", "tableName"), auth,
		)
	}

	{
		e.POST(route("folders/folders"), handlers.CreateFolderHandler(box), auth)
		e.GET(
			route("folders/folders/:nameOrId"),
			handlers.GetFolderHandler(box, "nameOrId"), auth,
		)
		e.DELETE(
			route("folders/folders/:nameOrId"),
			handlers.DeleteFolderHandler(box, "nameOrId"), auth,
		)
		e.GET(
			route("folders/folders/:folderId/members"),
			handlers.ListFolderMembersHandler(box, "folderId"), auth,
		)
	}

	{
		// per-server grid endpoints, addressed as {serverID}-http
		e.PUT(
			route(":gridServer/tables/:library/:tableName"),
			handlers.UploadGridTableHandler(box, "gridServer", "library", "tableName"),
			gridAuth,
		)
		e.GET(
			route(":gridServer/tables/:library"),
			handlers.ListGridTablesHandler(box, "gridServer", "library"),
			gridAuth,
		)
		e.GET(
			route(":gridServer/tables/:library/:tableName"),
			handlers.GetGridTableHandler(box, "gridServer", "library", "tableName"),
			gridAuth,
		)
		e.GET(
			route(":gridServer/stores/:library/:tableName"),
			handlers.DownloadGridStoreHandler(box, "gridServer", "library", "tableName"),
			gridAuth,
		)
	}

	log.Println("registered routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	certFile, keyFile := *pcert, *pkey
	switch {
	case certFile != "" && keyFile != "":
		e.Logger.Fatal(e.StartTLS(":"+conf.Port, certFile, keyFile))
	case *ptls:
		ca, err := cert.NewCA()
		if err != nil {
			log.Fatalf("can not generate CA: %s", err)
		}
		sv, err := ca.Certificate(
			cert.DNSName("localhost"),
			cert.IPAddress(net.IPv4(127, 0, 0, 1), net.IPv6loopback),
		)
		if err != nil {
			log.Fatalf("can not issue a server certificate: %s", err)
		}

		// written out so clients can point --cacert at it
		capath := filepath.Join(os.TempDir(), "millbox-ca.crt")
		if err := os.WriteFile(capath, ca.PEM(), 0644); err != nil {
			log.Fatalf("can not write CA certificate: %s", err)
		}
		log.Printf("serving TLS with a self-signed certificate. CA certificate: %s", capath)

		e.Logger.Fatal(e.StartTLS(":"+conf.Port, sv.PEM(), sv.KeyPEM()))
	default:
		e.Logger.Fatal(e.Start(":" + conf.Port))
	}
}

// route shapes a path for the trailing-slash router.
func route(p string) string {
	return "/" + strings.Trim(p, "/") + "/"
}

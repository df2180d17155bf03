package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "vlogvalidator/apps/api/echo"
	"vlogvalidator/core"
	"vlogvalidator/core/auth"
	"vlogvalidator/core/submission"
	authsvc "vlogvalidator/services/auth"
	feedbacksvc "vlogvalidator/services/feedback"
	logsvc "vlogvalidator/services/logger"
	metadatasvc "vlogvalidator/services/metadata"
	firestoredb "vlogvalidator/storage/firestore"
	inmemdb "vlogvalidator/storage/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		)
	} else {
		logger = logsvc.NewRollbarLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			conf,
		)
	}
	logger.Enable(!conf.Debug)

	// set up the submission store; Firestore when a project is configured,
	// in-memory otherwise (DEV)
	repo, cleanup, err := setUpStore(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up store: %v", err), err)
	}
	defer cleanup()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	submission.InitValidators(validate, translator)

	// set up services
	subSvc := submission.NewService(repo, validate, conf)

	var fbSvc core.FeedbackService
	if conf.Gemini.APIKey != "" {
		fbSvc = feedbacksvc.NewGeminiService(conf, logger)
	} else {
		fbSvc = feedbacksvc.NewStaticService()
	}
	metaSvc := metadatasvc.NewNoembedService(conf, logger)
	intake := submission.NewIntake(subSvc, metaSvc, fbSvc)

	var backend auth.Backend
	if conf.Auth.WebAPIKey != "" {
		backend = authsvc.NewFirebaseBackend(conf)
	} else {
		backend = authsvc.NewDummyBackend(conf)
	}
	authSvc := auth.NewService(backend)

	// log session transitions for the audit trail
	watcher := authSvc.Watch()
	defer watcher.Cancel()
	go func() {
		for sess := range watcher.C {
			if sess == nil {
				logger.Info("teacher signed out")
			} else {
				logger.Info(fmt.Sprintf("teacher signed in: %s", sess.Email))
			}
		}
	}()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			SubmissionSvc: subSvc,
			Intake:        intake,
			AuthSvc:       authSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpStore(conf *core.Config, logger core.Logger) (submission.Repository, func(), error) {
	if conf.Store.ProjectID == "" {
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, err
		}
		return inmemdb.NewSubmissionRepository(db), func() {}, nil
	}

	client, err := firestoredb.Open(context.Background(), conf)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if cerr := client.Close(); cerr != nil {
			logger.Error("failed to close Firestore client", cerr)
		}
	}
	return firestoredb.NewSubmissionRepository(client, conf, logger), cleanup, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

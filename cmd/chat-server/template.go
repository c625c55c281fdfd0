package main

import (
	"html/template"
	"io"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type Template struct {
	pattern   string
	dir       string
	templates atomic.Pointer[template.Template]
	watcher   *fsnotify.Watcher
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.Load().ExecuteTemplate(w, name, data)
}

// Watch reparses the views whenever one of them is written.
func (t *Template) Watch() error {
	var err error

	t.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-t.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) {
					continue
				}
				log.Infof("modified view: %s", event.Name)
				templates, err := template.ParseGlob(t.pattern)
				if err != nil {
					log.Errorf("parsing views: %+v", err)
					continue
				}
				t.templates.Store(templates)
			case err, ok := <-t.watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("watcher: %+v", err)
			}
		}
	}()

	return t.watcher.Add(t.dir)
}

func (t *Template) Close() {
	if t.watcher != nil {
		t.watcher.Close()
	}
}

func NewTemplate(uiDir string) (*Template, error) {
	dir := filepath.Join(uiDir, "views")
	pattern := filepath.Join(dir, "*.html")
	templates, err := template.ParseGlob(pattern)
	if err != nil {
		return nil, err
	}
	t := &Template{
		pattern: pattern,
		dir:     dir,
	}
	t.templates.Store(templates)
	return t, nil
}

// Package version хранит сведения о сборке, которые проставляются через -ldflags:
//
//	-X github.com/vladislavdragonenkov/storeadmin/internal/version.version=v1.2.0
package version

import "fmt"

// AppName — имя сервиса в логах, метриках и AppInfo платёжного провайдера.
const AppName = "storeadmin"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

func Version() string { return version }

func String() string {
	return fmt.Sprintf("%s version=%s commit=%s date=%s", AppName, version, commit, date)
}

// UserAgent — строка вида storeadmin/v1.2.0 для исходящих запросов.
func UserAgent() string {
	return AppName + "/" + version
}

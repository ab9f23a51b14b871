package autoqasm

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("autoqasm")

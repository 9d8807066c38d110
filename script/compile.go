package script

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/playsync/playsync/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var protoCache sync.Map

// compile parses each distinct scenario source once and keeps the bytecode for later runs.
func compile(name string, source []byte) (*lua.FunctionProto, error) {
	id := fmt.Sprintf("%s@%x", name, sha256.Sum256(source))
	if cached, ok := protoCache.Load(id); ok {
		return cached.(*lua.FunctionProto), nil
	}

	chunk, err := parse.Parse(bytes.NewReader(source), name)
	if err != nil {
		return nil, err
	}

	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, err
	}

	protoCache.Store(id, proto)
	return proto, nil
}

func readScript(path string) ([]byte, error) {
	return filesystem.API().ReadFile(path)
}

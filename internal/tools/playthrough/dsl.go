package playthrough

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const playthroughTypeName = "playthrough"

// Playthrough is a scripted session: a starting state and ordered steps.
type Playthrough struct {
	Name  string
	Seed  Seed
	Steps []Step
}

// Seed describes the game state a playthrough starts from. An empty SceneID
// starts at the first scene of the sequence.
type Seed struct {
	SceneID         string
	CompletedQuests []string
	CompletedEvents []string
	DialogueShown   []string
	ActiveQuest     string
}

// Step is one scripted action or expectation.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadFromFile evaluates a playthrough script.
func LoadFromFile(path string) (*Playthrough, error) {
	state := newLuaState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	p, err := runScript(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Load evaluates a playthrough script held in memory.
func Load(name, source string) (*Playthrough, error) {
	state := newLuaState()
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	p, err := runScript(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = name
	}
	return p, nil
}

func newLuaState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerPlaythroughType(state)
	registerPlaythroughConstructor(state)
	return state
}

func runScript(state *lua.State) (*Playthrough, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("playthrough script must return Playthrough")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	p, ok := ud.(*Playthrough)
	if !ok || p == nil {
		return nil, fmt.Errorf("playthrough script returned invalid Playthrough")
	}
	return p, nil
}

func registerPlaythroughType(state *lua.State) {
	lua.NewMetaTable(state, playthroughTypeName)
	state.NewTable()
	lua.SetFunctions(state, playthroughMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerPlaythroughConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: playthroughNew}}, 0)
	state.SetGlobal("Playthrough")
}

func playthroughNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	opts := optionalTable(state, 2)
	p := &Playthrough{
		Name: name,
		Seed: Seed{
			SceneID:         stringArg(opts, "scene"),
			CompletedQuests: stringList(opts["completed"]),
			CompletedEvents: stringList(opts["events"]),
			DialogueShown:   stringList(opts["shown"]),
			ActiveQuest:     stringArg(opts, "active_quest"),
		},
	}
	state.PushUserData(p)
	lua.SetMetaTableNamed(state, playthroughTypeName)
	return 1
}

var playthroughMethods = []lua.RegistryFunction{
	{Name: "advance", Function: stepMethod("advance", optsAt(2))},
	{Name: "retreat", Function: stepMethod("retreat", optsAt(2))},
	{Name: "event", Function: stepMethod("event", eventArgs)},
	{Name: "answer", Function: stepMethod("answer", answerArgs)},
	{Name: "change_answer", Function: stepMethod("change_answer", optsAt(2))},
	{Name: "skip_typing", Function: stepMethod("skip_typing", nil)},
	{Name: "wait", Function: stepMethod("wait", waitArgs)},
	{Name: "select_quest", Function: stepMethod("select_quest", idArgs("quest id"))},
	{Name: "go_to", Function: stepMethod("go_to", idArgs("scene id"))},
	{Name: "expect_scene", Function: stepMethod("expect_scene", idArgs("scene id"))},
	{Name: "expect_index", Function: stepMethod("expect_index", indexArgs)},
	{Name: "expect_phase", Function: stepMethod("expect_phase", idArgs("phase"))},
	{Name: "expect_next_enabled", Function: stepMethod("expect_next_enabled", nextEnabledArgs)},
	{Name: "expect_completed", Function: stepMethod("expect_completed", idArgs("quest id"))},
	{Name: "expect_unknown", Function: stepMethod("expect_unknown", optsAt(2))},
}

// stepMethod appends a step built by args and returns the playthrough for
// chaining.
func stepMethod(kind string, args func(*lua.State) map[string]any) lua.Function {
	return func(state *lua.State) int {
		p := checkPlaythrough(state)
		var data map[string]any
		if args != nil {
			data = args(state)
		}
		appendStep(p, kind, data)
		state.PushValue(1)
		return 1
	}
}

func optsAt(index int) func(*lua.State) map[string]any {
	return func(state *lua.State) map[string]any {
		return optionalTable(state, index)
	}
}

func idArgs(what string) func(*lua.State) map[string]any {
	return func(state *lua.State) map[string]any {
		id := strings.TrimSpace(lua.CheckString(state, 2))
		if id == "" {
			lua.ArgumentError(state, 2, what+" is required")
		}
		data := optionalTable(state, 3)
		data["id"] = id
		return data
	}
}

func eventArgs(state *lua.State) map[string]any {
	id := strings.TrimSpace(lua.CheckString(state, 2))
	if id == "" {
		lua.ArgumentError(state, 2, "event id is required")
	}
	return map[string]any{"id": id, "data": optionalTable(state, 3)}
}

func answerArgs(state *lua.State) map[string]any {
	data := optionalTable(state, 3)
	data["value"] = lua.CheckString(state, 2)
	return data
}

func waitArgs(state *lua.State) map[string]any {
	ms := lua.CheckInteger(state, 2)
	if ms < 0 {
		lua.ArgumentError(state, 2, "wait must not be negative")
	}
	return map[string]any{"ms": ms}
}

func indexArgs(state *lua.State) map[string]any {
	return map[string]any{"index": lua.CheckInteger(state, 2)}
}

func nextEnabledArgs(state *lua.State) map[string]any {
	lua.CheckType(state, 2, lua.TypeBoolean)
	data := optionalTable(state, 3)
	data["value"] = state.ToBoolean(2)
	return data
}

func checkPlaythrough(state *lua.State) *Playthrough {
	ud := lua.CheckUserData(state, 1, playthroughTypeName)
	if p, ok := ud.(*Playthrough); ok && p != nil {
		return p
	}
	lua.ArgumentError(state, 1, "playthrough expected")
	return nil
}

func appendStep(p *Playthrough, kind string, data map[string]any) {
	if p == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	p.Steps = append(p.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	length := 0
	isArray := true
	state.PushNil()
	for state.Next(index) {
		if position, ok := state.ToInteger(-2); !ok || state.TypeOf(-2) != lua.TypeNumber || position < 1 {
			isArray = false
		} else if position > length {
			length = position
		}
		state.Pop(1)
	}
	if !isArray || length == 0 {
		return tableToMap(state, index)
	}

	result := make([]any, 0, length)
	for i := 1; i <= length; i++ {
		state.RawGetInt(index, i)
		result = append(result, luaToGo(state, -1))
		state.Pop(1)
	}
	return result
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}

func stringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		if single, ok := value.(string); ok && strings.TrimSpace(single) != "" {
			return []string{strings.TrimSpace(single)}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if text, ok := item.(string); ok && strings.TrimSpace(text) != "" {
			out = append(out, strings.TrimSpace(text))
		}
	}
	return out
}

func stringArg(args map[string]any, key string) string {
	switch value := args[key].(type) {
	case string:
		return strings.TrimSpace(value)
	case int:
		return fmt.Sprint(value)
	case float64:
		return fmt.Sprint(value)
	default:
		return ""
	}
}

func intArg(args map[string]any, key string) (int, bool) {
	switch value := args[key].(type) {
	case int:
		return value, true
	case float64:
		return int(value), true
	default:
		return 0, false
	}
}

func boolArg(args map[string]any, key string) (bool, bool) {
	value, ok := args[key].(bool)
	return value, ok
}

package registry

// LifecycleHook is one well-known Udon event: the source-level method name
// a class author writes, and the fixed export name/parameter list the
// layout builder must use instead of its usual per-class naming scheme
// (spec.md §4.1, "Recognized lifecycle-hook methods").
type LifecycleHook struct {
	SourceName     string
	ExportName     string
	ParameterNames []string
}

// lifecycleHooks is the fixed event table. Every entry here is emitted
// with its exact ExportName/ParameterNames regardless of which class
// declares it, so independently compiled assemblies agree on the wire
// names the runtime dispatches by.
var lifecycleHooks = []LifecycleHook{
	{SourceName: "Start", ExportName: "_start"},
	{SourceName: "Update", ExportName: "_update"},
	{SourceName: "FixedUpdate", ExportName: "_fixedUpdate"},
	{SourceName: "LateUpdate", ExportName: "_lateUpdate"},
	{SourceName: "OnEnable", ExportName: "_onEnable"},
	{SourceName: "OnDisable", ExportName: "_onDisable"},
	{SourceName: "Interact", ExportName: "_interact"},
	{SourceName: "OnPlayerJoined", ExportName: "_onPlayerJoined", ParameterNames: []string{"player"}},
	{SourceName: "OnPlayerLeft", ExportName: "_onPlayerLeft", ParameterNames: []string{"player"}},
	{SourceName: "OnPlayerRespawn", ExportName: "_onPlayerRespawn", ParameterNames: []string{"player"}},
	{SourceName: "OnAvatarEyeHeightChanged", ExportName: "_onAvatarEyeHeightChanged", ParameterNames: []string{"player", "eyeHeightAsMeters"}},
	{SourceName: "OnOwnershipTransferred", ExportName: "_onOwnershipTransferred", ParameterNames: []string{"player"}},
	{SourceName: "OnPickup", ExportName: "_onPickup"},
	{SourceName: "OnDrop", ExportName: "_onDrop"},
	{SourceName: "OnPlayerTriggerEnter", ExportName: "_onPlayerTriggerEnter", ParameterNames: []string{"player"}},
	{SourceName: "OnPlayerTriggerExit", ExportName: "_onPlayerTriggerExit", ParameterNames: []string{"player"}},
	{SourceName: "OnDeserialization", ExportName: "_onDeserialization"},
	{SourceName: "OnPreSerialization", ExportName: "_onPreSerialization"},
	{SourceName: "OnPostSerialization", ExportName: "_onPostSerialization"},
}

// EventRegistry looks up the fixed lifecycle-hook table by source name.
type EventRegistry struct {
	bySourceName map[string]LifecycleHook
}

// NewEventRegistry builds the registry from the fixed hook table.
func NewEventRegistry() *EventRegistry {
	r := &EventRegistry{bySourceName: make(map[string]LifecycleHook, len(lifecycleHooks))}
	for _, h := range lifecycleHooks {
		r.bySourceName[h.SourceName] = h
	}
	return r
}

// Lookup returns the hook for a source method name, if it is a recognized
// lifecycle event.
func (r *EventRegistry) Lookup(sourceName string) (LifecycleHook, bool) {
	h, ok := r.bySourceName[sourceName]
	return h, ok
}

// IsLifecycleHook reports whether name names a recognized lifecycle event.
func (r *EventRegistry) IsLifecycleHook(name string) bool {
	_, ok := r.bySourceName[name]
	return ok
}

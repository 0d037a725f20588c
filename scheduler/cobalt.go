package scheduler

// Cobalt qsub, chained through $DEPS so successive scripts queue behind
// each other.
var cobaltTemplate = `
if [ "$DEPS" == "" ]; then
   DEPENDENCIES=""
else
   DEPENDENCIES="--dependencies $DEPS"
fi

DEPS=$(qsub $DEPENDENCIES -n {{.nodes}} -t {{.walltime}} -A {{.account}} -q {{.queue}} \
	{{.driver}} \
	` + driverArgs + `)
`

func init() {
	Register(New("cobalt", "qsub", "Cobalt qsub (ALCF)", cobaltTemplate))
}

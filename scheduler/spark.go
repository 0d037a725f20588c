package scheduler

var sparkTemplate = `
if [ "$DEPS" == "" ]; then
   DEPENDENCIES=""
else
   DEPENDENCIES="--dependencies $DEPS"
fi

DEPS=$(./submit-spark.sh $DEPENDENCIES -A {{.account}} -t {{.walltime}} -n {{.nodes}} -q {{.queue}} \
	{{.driver}} \
	` + driverArgs + `)
`

func init() {
	Register(New("spark", "submit-spark.sh", "Spark on Cobalt via submit-spark.sh", sparkTemplate))
}

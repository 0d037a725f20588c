package scheduler

var slurmTemplate = `
if [ "$DEPS" == "" ]; then
   DEPENDENCIES=""
else
   DEPENDENCIES="--dependency=afterany:$DEPS"
fi

DEPS=$(sbatch --parsable $DEPENDENCIES \
	--job-name={{.name}} --nodes={{.nodes}} --ntasks-per-node={{.cores}} \
	--time={{.walltime}} --account={{.account}} --partition={{.queue}} \
	--wrap "{{.driver}} \
	` + driverArgs + `")
`

func init() {
	Register(New("slurm", "sbatch", "Slurm sbatch", slurmTemplate))
}

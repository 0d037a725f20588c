package scheduler

// SGE needs a notification address; -m ea mails on end or abort.
var sgeTemplate = `
if [ "$DEPS" == "" ]; then
   DEPENDENCIES=""
else
   DEPENDENCIES="-hold_jid $DEPS"
fi

DEPS=$(qsub -terse $DEPENDENCIES -N {{.name}} -pe mpi {{.tasks}} \
	-l h_rt={{.walltime}} -P {{.account}} -q {{.queue}} -M {{.email}} -m ea \
	-b y {{.driver}} \
	` + driverArgs + `)
`

func init() {
	Register(New("sge", "qsub", "Sun Grid Engine qsub", sgeTemplate))
}

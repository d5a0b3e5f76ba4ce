package buildinfo

const Graffiti = " ____  ____  _____ \n|  _ \\|  _ \\|_   _|\n| |_) | |_) | | |  \n|  _ <|  _ <  | |  \n|_| \\_\\_| \\_\\ |_|  \n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "RRT"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

// String is the one line banner printed at startup.
func (b buildinfo) String() string {
	return b.Name() + ": " + b.Time() + ", " + b.Tag()
}

var Info buildinfo

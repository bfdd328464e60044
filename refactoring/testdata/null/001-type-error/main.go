package main

func main() {
	var x int = "s"
	_ = x
}

//<<<<<null,1,1,1,2,true,pass
//<<<<<null,1,1,1,2,false,fail
